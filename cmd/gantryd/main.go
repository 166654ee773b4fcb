// Command gantryd runs the gantry controller against the simulated rig,
// speaking the JSON line protocol on stdio, a serial device, or a TCP
// listener.  It is the development stand-in for the microcontroller
// firmware: same protocol, same calibration behavior, no silicon.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/techit45/Lisa-Smart-Farm/command"
	"github.com/techit45/Lisa-Smart-Farm/comm"
	"github.com/techit45/Lisa-Smart-Farm/gantry"
	"github.com/techit45/Lisa-Smart-Farm/relay"
	"github.com/techit45/Lisa-Smart-Farm/sim"
	"github.com/techit45/Lisa-Smart-Farm/soil"
)

// loopInterval paces the control loop; it must outrun the fastest step
// rate of the operational profile.
const loopInterval = 100 * time.Microsecond

var (
	serialDev = flag.String("serial", "", "serial device to speak the protocol on (default stdio)")
	baud      = flag.Int("baud", 115200, "serial baud rate")
	listen    = flag.String("listen", "", "TCP address to listen on instead of stdio/serial")
	logLevel  = flag.String("log-level", "info", "logrus level")
)

// stdio glues stdin+stdout into one ReadWriteCloser.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return nil }

func main() {
	flag.Parse()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("bad log level: %v", err)
	}
	logrus.SetLevel(level)

	rig := sim.NewRig()
	st := &gantry.State{
		X: gantry.NewAxis(rig.X, gantry.Wall),
		Y: gantry.NewAxis(rig.Y, gantry.Wall),
	}
	cal := gantry.NewCalibrator(gantry.Wall)
	esX := gantry.Endstops{Home: rig.X.HomeSwitch(), End: rig.X.EndSwitch()}
	esY := gantry.Endstops{Home: rig.Y.HomeSwitch(), End: rig.Y.EndSwitch()}

	disp := &command.Dispatcher{
		State:     st,
		Cal:       cal,
		EndstopsX: esX,
		EndstopsY: esY,
		Relays:    relay.NewController(rig.Water, rig.Fert),
		Soil:      soil.NewReader(rig.Soil[0], rig.Soil[1], rig.Soil[2]),
	}

	// calibration is not persisted, so every boot measures the rails
	logrus.Info("calibrating")
	if err := cal.Calibrate(st, esX, esY); err != nil {
		logrus.WithError(err).Error("startup calibration failed; slot moves disabled until recalibrate")
	} else {
		logrus.WithFields(logrus.Fields{
			"travelX": st.X.Travel(),
			"travelY": st.Y.Travel(),
		}).Info("calibrated")
	}

	if *listen != "" {
		ln, err := net.Listen("tcp", *listen)
		if err != nil {
			logrus.Fatal(err)
		}
		defer ln.Close()
		logrus.WithField("addr", *listen).Info("waiting for connections")
		acceptLoop(ln, disp)
		return
	}

	conn, err := transport()
	if err != nil {
		logrus.Fatal(err)
	}
	serve(disp, conn)
	conn.Close()
}

// acceptLoop serves TCP clients one at a time on a single listener.  The
// controller is one flow, so a second client waits in the accept queue
// rather than interleaving with the first.
func acceptLoop(ln net.Listener, disp *command.Dispatcher) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			logrus.WithError(err).Warn("accept failed")
			return
		}
		serve(disp, conn)
		conn.Close()
	}
}

// transport opens the stdio or serial channel the flags selected.
func transport() (io.ReadWriteCloser, error) {
	if *serialDev != "" {
		return comm.OpenSerial(*serialDev, *baud)
	}
	return stdio{}, nil
}

// lineReader is the external line reader: it assembles complete lines
// off the transport and hands them to the control loop.
func lineReader(r io.Reader, lines chan<- []byte) {
	defer close(lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := make([]byte, len(sc.Bytes()))
		copy(line, sc.Bytes())
		lines <- line
	}
}

func serve(disp *command.Dispatcher, conn io.ReadWriteCloser) {
	lines := make(chan []byte)
	go lineReader(conn, lines)

	loop := &command.Loop{
		Disp:  disp,
		Lines: lines,
		Out:   conn,
		Pace:  rate.NewLimiter(rate.Every(loopInterval), 1),
	}
	if err := loop.Run(context.Background()); err != nil {
		logrus.WithError(err).Warn("control loop exited")
	}
}
