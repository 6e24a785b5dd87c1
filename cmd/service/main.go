package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pulsegram/checkout-backend/api"
	"github.com/pulsegram/checkout-backend/auth"
	"github.com/pulsegram/checkout-backend/db"
	"github.com/pulsegram/checkout-backend/stripe"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.String("database-url", "", "PostgreSQL connection URL")
	flag.String("stripe-key", "", "Stripe secret API key")
	flag.String("auth-url", "", "identity provider base URL")
	flag.String("auth-key", "", "identity provider API key")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("CHECKOUT")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	databaseURL := viper.GetString("database-url")
	if databaseURL == "" {
		log.Fatal().Msg("database-url is required")
	}
	stripeKey := viper.GetString("stripe-key")
	authURL := viper.GetString("auth-url")
	authKey := viper.GetString("auth-key")
	if authURL == "" {
		log.Fatal().Msg("auth-url is required")
	}
	// initialize the PostgreSQL storage
	storage, err := db.New(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create the database storage")
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close the database storage")
		}
	}()
	// create the identity provider client
	authClient := auth.New(authURL, authKey)
	// create the Stripe checkout service
	stripeConfig, err := stripe.NewConfig(stripeKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid stripe configuration")
	}
	stripeService := stripe.NewService(stripe.NewClient(stripeConfig), storage)
	// create the local API server
	api.New(&api.Config{
		Host:   host,
		Port:   port,
		Auth:   authClient,
		Stripe: stripeService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Info().Str("host", host).Int("port", port).Msg("server started")
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
