// @title           axone API
// @version         1.0
// @description     API провижининга аккаунтов после оплаты и signup-флоу.
// @contact.name    Axone
// @contact.email   support@axone.app
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /

package main

import "axone_backend/internal/app"

func main() {
	app.Run()
}
