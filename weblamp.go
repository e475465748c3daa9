package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"gregoryjjb/weblamp/gpio"
)

func init() {
	InitializeLogger()
}

// Populated by ldflags (ugh)
var (
	version            string
	buildUnixTimestamp string
	commitHash         string
)

// BuildInfo is the version info baked in at build time.
type BuildInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	CommitHash string `json:"commit_hash"`
}

func main() {
	ts, _ := strconv.ParseInt(buildUnixTimestamp, 10, 64)
	buildTime := time.Unix(ts, 0)

	versionFlag := flag.Bool("version", false, "Print version")
	systemdFlag := flag.Bool("systemd", false, "Print systemd service file")
	configFlag := flag.String("config", "", "Path to config file")
	noEmbedFlag := flag.Bool("noembed", false, "Read web assets from disk instead of the embedded copies")
	flag.Parse()

	if *versionFlag {
		fmt.Println("WebLamp version:", version)
		fmt.Println("Built on:", buildTime)
		fmt.Println("Commit hash:", commitHash)
		return
	}

	if *systemdFlag {
		SystemdServiceFile()
		return
	}

	buildInfo := BuildInfo{
		Version:    version,
		BuildTime:  buildTime.Format(time.RFC3339),
		CommitHash: commitHash,
	}

	log.Info().
		Str("version", version).
		Str("build_timestamp", buildInfo.BuildTime).
		Str("commit_hash", commitHash).
		Msg("Initializing WebLamp")

	flags := Flags{
		ConfigPath: *configFlag,
		NoEmbed:    *noEmbedFlag,
	}

	config, err := NewConfig(NewWebLampOSFS(), flags, os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Config initialization failed")
	}

	driver, err := gpio.New()
	if err != nil {
		log.Fatal().Err(err).Msg("GPIO initialization failed")
	}
	defer driver.Close()

	board, err := NewBoard(driver, config.Pins())
	if err != nil {
		log.Fatal().Err(err).Msg("Board initialization failed")
	}

	if err := StartServer(config, buildInfo, board); err != nil {
		log.Err(err).Msg("Server closed with error")
	}
}
