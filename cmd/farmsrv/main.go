// Command farmsrv bridges the gantry controller's serial line protocol to
// HTTP for the smart farm dashboard.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/sirupsen/logrus"

	yml "gopkg.in/yaml.v2"

	"github.com/techit45/Lisa-Smart-Farm/bridge"
	"github.com/techit45/Lisa-Smart-Farm/comm"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "farmsrv.yml"
	k              = koanf.New(".")
)

// Config holds the bridge daemon's wiring.
type Config struct {
	// Addr is the address to listen at
	Addr string `koanf:"Addr" yaml:"Addr"`

	// Device is the serial device path or TCP host:port of the controller
	Device string `koanf:"Device" yaml:"Device"`

	// Serial selects RS232/USB (true) or TCP (false)
	Serial bool `koanf:"Serial" yaml:"Serial"`

	// Baud is the serial line rate
	Baud int `koanf:"Baud" yaml:"Baud"`

	// LogLevel is the logrus level for the bridge
	LogLevel string `koanf:"LogLevel" yaml:"LogLevel"`
}

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:     ":8000",
		Device:   "/dev/ttyUSB0",
		Serial:   true,
		Baud:     115200,
		LogLevel: "info"}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `farmsrv bridges the smart farm gantry controller to HTTP.
The dashboard and any other client talk plain HTTP to this server, which
forwards each request over the serial line protocol and relays the reply.

Usage:
	farmsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `farmsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

Without a controller on the configured device the server still runs; the
status route serves the last cached reading and everything else reports
the device as unreachable.

Routes, mirroring the dashboard's expectations:
	/status        current run flag, soil moisture, pump states
	/tree?id=N     park over pot N (0-8 as the dashboard counts)
	/pump?type=T   toggle pump "water" or "fert"
	/home          move both axes to zero
	/recalibrate   re-run homing and travel measurement (slow; other
	               routes answer 423 until it finishes)
	/move?x=&y=    jog relative, dashboard pixels
	/serial/send?cmd=<json>  raw line-protocol passthrough`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("farmsrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logrus.SetLevel(level)

	dev := comm.NewDevice(c.Device, c.Serial, c.Baud)
	if err := dev.Open(); err != nil {
		// run anyway; the dashboard keeps rendering from cache and the
		// operator can restart once the controller is plugged in
		logrus.WithError(err).Warn("controller not connected")
	}

	srv := bridge.New(dev)
	rootMux := chi.NewRouter()
	rootMux.Use(middleware.Logger)
	rootMux.Mount("/", srv.Router())
	logrus.WithField("addr", c.Addr).Info("now listening for requests")
	log.Fatal(http.ListenAndServe(c.Addr, rootMux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
