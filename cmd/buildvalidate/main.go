package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"gw2-resim/internal/character"
	"gw2-resim/internal/config"
)

func main() {
	var configDir string
	flag.StringVar(&configDir, "config-dir", "configs", "Path to config directory")
	flag.Parse()

	configDir = filepath.Clean(configDir)
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("config invalid: %v", err)
	}
	build, err := cfg.Build.ToBuild()
	if err != nil {
		log.Fatalf("build invalid: %v", err)
	}
	space, err := cfg.Sweep.ToSpace()
	if err != nil {
		log.Fatalf("sweep invalid: %v", err)
	}

	fmt.Printf("Config '%s' validated successfully\n", configDir)
	fmt.Printf("Stats: power %d, precision %d, ferocity %d, condition damage %d, expertise %d\n",
		build.Power, build.Precision, build.Ferocity, build.ConditionDamage, build.Expertise)
	for i, sigils := range build.Sigils {
		fmt.Printf("%s: %s [%s;%s]\n", character.WeaponSet(i), build.WeaponTypes[i], sigils[0], sigils[1])
	}
	fmt.Printf("Sweep: %s candidates\n", humanize.Comma(int64(len(space.Candidates()))))
}
