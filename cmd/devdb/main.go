package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/projectsoft/obras-api/internal/containers"
)

func main() {
	var envFilename string
	var showHelp bool
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.BoolVar(&showHelp, "h", false, "show usage")
	flag.Parse()

	usage := `
Run a throwaway development database container with the environment variables from the .env file.

Usage:

devdb [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  devdb -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	var devContainers *containers.DevContainers
	go func() {
		var err error
		devContainers, err = containers.CreateDevContainers(nil)
		if err != nil {
			log.Fatalf("Failed to create dev containers: %v\n", err)
		}
	}()

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating dev containers...\n", sig)
	if devContainers != nil {
		devContainers.Terminate(nil)
	}
}
