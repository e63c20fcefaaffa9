// @title           Storefront API
// @version         1.0
// @description     Multi-role storefront backend: sessions, access guard, notifications, catalog, checkout pricing, affiliates and payouts.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the session token.
package main

import (
	"os"

	"github.com/clikenova/storefront/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
