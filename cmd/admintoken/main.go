// Command admintoken issues a signed administrator bearer token for the
// field-keeper admin API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
)

func main() {
	log := logger.NewLogger("field-keeper-admintoken")

	adminID := flag.Int64("admin-id", 0, "administrator actor id recorded as the audit actor")
	flag.Parse()

	if *adminID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: admintoken -admin-id <id>")
		os.Exit(2)
	}

	cfg, err := config.GetAdminTokenConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	token, err := service.NewAdminTokenService(cfg, log).CreateToken(context.Background(), *adminID)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating admin token")
	}

	fmt.Println(token.SignedString)
}
