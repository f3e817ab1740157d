package handlers

// AppHandlers собирает все HTTP-обработчики приложения.
type AppHandlers struct {
	Provisioning *ProvisioningHandler
	Signup       *SignupHandler
	Profile      *ProfileHandler
}
