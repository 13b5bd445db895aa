package main

import (
	"flag"
	"log"

	"whatsup/pkg/configserver"
)

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	configPath := flag.String("config", "config.json", "config file path")
	flag.Parse()

	srv := configserver.New(*configPath)
	if err := srv.Run(*addr); err != nil {
		log.Fatal(err)
	}
}
