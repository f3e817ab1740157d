package signup

// Step - шаг signup-флоу. Переходы только вперед, пропусков нет.
type Step string

const (
	StepForm       Step = "form"
	StepOTP        Step = "otp"
	StepPayment    Step = "payment"
	StepOnboarding Step = "onboarding"
	StepDashboard  Step = "dashboard"
)

// Таблица переходов. Единственный способ сменить шаг - advance(),
// поэтому назад состояние двигаться не может.
var nextStep = map[Step]Step{
	StepForm:       StepOTP,
	StepOTP:        StepPayment,
	StepPayment:    StepOnboarding,
	StepOnboarding: StepDashboard,
}

// FormData - данные, собранные на шаге form. Пароль хранится в
// открытом виде до конца флоу: им же выполняется вход на шаге
// dashboard, после чего состояние уничтожается.
type FormData struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	Plan          string `json:"plan"`
	Currency      string `json:"currency"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// State - персистентное состояние одного signup-флоу. Переживает
// перезагрузку страницы: пользователь, вернувшийся после оплаты,
// продолжает с onboarding, а не с form.
type State struct {
	ID                  string   `json:"id"`
	Step                Step     `json:"step"`
	Form                FormData `json:"form"`
	OTPVerified         bool     `json:"otp_verified"`
	PaymentCompleted    bool     `json:"payment_completed"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	SessionID           string   `json:"session_id"`
	ExpectedCode        string   `json:"expected_code"`
}

func NewState(id string) *State {
	return &State{
		ID:   id,
		Step: StepForm,
	}
}

// advance двигает состояние на следующий шаг по таблице переходов.
func (s *State) advance() {
	if next, ok := nextStep[s.Step]; ok {
		s.Step = next
	}
}
