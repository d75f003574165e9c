package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const envFilename = ".env"

// InitEnvironmentVariables loads a .env file from the working directory
// when one exists. A missing file is not an error: deployed environments
// inject real environment variables instead.
func InitEnvironmentVariables() error {
	if _, err := os.Stat(envFilename); os.IsNotExist(err) {
		log.Debugf("no %s file found, using process environment", envFilename)
		return nil
	}

	if err := godotenv.Load(envFilename); err != nil {
		return fmt.Errorf("failed to load %s file: %v", envFilename, err)
	}

	return nil
}
