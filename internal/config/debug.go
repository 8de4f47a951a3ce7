package config

import "os"

func IsDebug() bool {
	return os.Getenv("PITCHSIDE_DEBUG") == "1"
}
