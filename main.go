package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"luxetravel/app"
)

type options struct {
	HTTPAddr            string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"address the HTTP server listens on"`
	BusAPIURL           string `long:"bus-api-url" env:"BUS_API_URL" default:"http://localhost:3001" description:"base URL of the ticketing service"`
	FoodAPIURL          string `long:"food-api-url" env:"FOOD_API_URL" default:"http://localhost:3002" description:"base URL of the food service"`
	FoodServiceEmail    string `long:"food-service-email" env:"FOOD_SERVICE_EMAIL" default:"luxetravel@example.com" description:"shared identity for the food service"`
	FoodServicePassword string `long:"food-service-password" env:"FOOD_SERVICE_PASSWORD" default:"password123" description:"password of the shared food service identity"`
	RedisAddr           string `long:"redis-addr" env:"REDIS_ADDR" description:"redis address; empty keeps sessions, cache and events in memory"`
	JaegerEndpoint      string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"jaeger collector endpoint; empty disables trace export"`
	Verbose             bool   `long:"verbose" short:"v" env:"VERBOSE" description:"enable debug logging"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(app.Config{
		HTTPAddr:            opts.HTTPAddr,
		BusAPIURL:           opts.BusAPIURL,
		FoodAPIURL:          opts.FoodAPIURL,
		FoodServiceEmail:    opts.FoodServiceEmail,
		FoodServicePassword: opts.FoodServicePassword,
		RedisAddr:           opts.RedisAddr,
		JaegerEndpoint:      opts.JaegerEndpoint,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize the app")
	}

	if err := a.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("app terminated with an error")
	}
}
