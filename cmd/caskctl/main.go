// Command caskctl is a thin CLI wrapper around the cask key-value store. It
// opens a database, performs a single put or get, and closes it — there is
// no listener and no wire protocol; "any network protocol" is out of scope
// for this revision.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/kdresden/cask"
)

func main() {
	dataDir := flag.String("dir", "", "Data directory as a valid path")
	syncOnPut := flag.Bool("sync", false, "Persist each write to disk immediately?")
	maxFileSize := flag.Int64("max-file-size", 0, "Rotate the active datafile once it exceeds this many bytes (0 disables rotation)")
	configPath := flag.String("config", "", "Load configuration from this YAML file instead of flags")

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("usage: caskctl [-dir PATH] [-sync] [-max-file-size N] [-config FILE] <put KEY VALUE | get KEY>")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath, *dataDir, *syncOnPut, *maxFileSize)
	if err != nil {
		log.Fatal(err)
	}

	db, err := cask.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	switch args[0] {
	case "put":
		if len(args) != 3 {
			log.Fatal("usage: caskctl put KEY VALUE")
		}
		if err := db.Put([]byte(args[1]), []byte(args[2])); err != nil {
			log.Fatal(err)
		}
	case "get":
		if len(args) != 2 {
			log.Fatal("usage: caskctl get KEY")
		}
		value, err := db.Get([]byte(args[1]))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(value))
	default:
		log.Fatalf("unknown command %q", args[0])
	}
}

// loadConfig prefers a YAML config file when given, falls back to flags
// otherwise. On the flags path it picks a console-friendly logger when
// stdout is a terminal (mattn/go-isatty) versus a JSON logger when it
// isn't; a config file's logger is whatever LoadConfigFile builds.
func loadConfig(configPath, dataDir string, syncOnPut bool, maxFileSize int64) (*cask.Config, error) {
	if configPath != "" {
		cfg, err := cask.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if dataDir == "" {
		return nil, fmt.Errorf("-dir is required when -config is not given")
	}

	return &cask.Config{
		DataDir:               dataDir,
		SyncOnPut:             syncOnPut,
		MaxFileSize:           maxFileSize,
		RotationCheckInterval: time.Minute,
		Logger:                newCLILogger(),
	}, nil
}

func newCLILogger() *zap.SugaredLogger {
	var zcfg zap.Config
	if isatty.IsTerminal(os.Stdout.Fd()) {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	return logger.Sugar()
}
