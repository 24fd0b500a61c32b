// cmd/main.go
package main

import (
	"go-bookkeeping-api/app"

	_ "go-bookkeeping-api/docs"
)

// @title           Bookkeeping API
// @version         1.0
// @description     Personal bank-account bookkeeping API.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
