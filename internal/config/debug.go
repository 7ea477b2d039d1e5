package config

import "os"

func IsDebug() bool {
	return os.Getenv("MEDASSIST_DEBUG") == "1"
}
