package main

import (
	_ "github.com/Sam2op/ProjectEase/docs"
	"github.com/Sam2op/ProjectEase/internal/adapter/http/routes"
	"github.com/Sam2op/ProjectEase/internal/config"
	"github.com/Sam2op/ProjectEase/pkg"

	_ "github.com/joho/godotenv/autoload"
)

// @title           ProjectEase API
// @version         1.0
// @description     Project request lifecycle and payment service backed by DynamoDB.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	config.LoadConfig()
	pkg.InitializeLogger()
	routes.Run()
}
