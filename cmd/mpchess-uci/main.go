// Command mpchess-uci runs the engine as a UCI chess engine, reading
// commands from stdin and writing responses to stdout.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/mtpham99/mpchess/internal/engine"
	"github.com/mtpham99/mpchess/internal/uci"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	eng := engine.NewEngine()
	protocol := uci.New(eng)
	protocol.Run()
}
