// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/dispatch"
	"go.shapes.dev/interop/fatalerror"
	"go.shapes.dev/interop/logging"
	"go.shapes.dev/interop/metering"
	"go.shapes.dev/interop/model"
	"go.shapes.dev/interop/motion"
	"go.shapes.dev/interop/poll"
	"go.shapes.dev/interop/signals"
	"go.shapes.dev/interop/statusapi"
)

func main() {
	opts, parser := getCLIArgs()
	logging.SetLogLevel(opts.LogLevel)

	stop := signals.ShutdownOnSignals()
	defer stop.Stop()

	if err := run(opts, parser, os.Stdout, stop); err != nil {
		log.WithError(err).WithField("errorType", fatalerror.TypeOf(err)).Error("Exiting")
		stop.Stop()
		os.Exit(1)
	}
}

func getCLIArgs() (options, *flags.Parser) {
	opts, parser, err := parseArgs(os.Args[1:])
	if errors.Is(err, errHelp) {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if err != nil {
		log.WithError(err).WithField("errorType", fatalerror.TypeOf(err)).Fatal("Failed to parse command line arguments:", os.Args)
	}
	return opts, parser
}

// run sets up the middleware entities for the selected role and runs the
// control loop until stop delivers.
func run(opts options, parser *flags.Parser, stdout io.Writer, stop *signals.Source) error {
	logCfg, err := loggingConfig(opts)
	if err != nil {
		return err
	}
	logFile, err := logging.Apply(logCfg)
	if err != nil {
		return fatalerror.New(fatalerror.LoggingConfig, err)
	}
	defer logFile.Close()

	qos, err := buildQos(opts, parser)
	if err != nil {
		return err
	}
	log.WithField("qos", qos.String()).Debug("QoS configured")

	participant, err := newParticipant(opts, opts.domainID())
	if err != nil {
		return fatalerror.New(fatalerror.TransportFailure, err)
	}
	defer participant.Close()

	topic, err := participant.CreateTopic(opts.Topic, model.ShapeTypeName, qos)
	if err != nil {
		return fatalerror.Errorf(fatalerror.EntityCreation, "create_topic failed: %w", err)
	}
	fmt.Fprintf(stdout, "Topic name is %s. Type is %s.\n", topic.Name, topic.TypeName)
	fmt.Fprintln(stdout, "Press Ctrl-C to quit.")

	counters := metering.NewCounters()
	role, err := newRole(opts, parser, participant, topic, qos, counters, stdout)
	if err != nil {
		return err
	}

	loop := dispatch.NewLoop(poll.NewPoller(), stop, role, stdout)
	info := statusapi.Info{
		Role:      roleName(opts),
		Topic:     topic.Name,
		DomainID:  participant.DomainID(),
		Transport: opts.Transport,
		Qos:       qos.String(),
	}
	return serve(loop, opts.StatusAddress, info, counters, stop)
}

func roleName(opts options) string {
	if opts.Publisher {
		return "publisher"
	}
	return "subscriber"
}

func newRole(opts options, parser *flags.Parser, participant dds.DomainParticipant, topic dds.Topic, qos dds.QosPolicies, counters *metering.Counters, stdout io.Writer) (dispatch.Role, error) {
	if opts.Publisher {
		log.Debug("Publisher")
		writer, err := participant.CreateDataWriter(topic, qos)
		if err != nil {
			return nil, fatalerror.Errorf(fatalerror.EntityCreation, "create_datawriter failed: %w", err)
		}
		r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		return dispatch.NewPublisher(writer, motion.NewShape(opts.Color), motion.NewVelocity(r), counters, stdout), nil
	}

	log.Debug("Subscriber")
	reader, err := participant.CreateDataReader(topic, qos)
	if err != nil {
		return nil, fatalerror.Errorf(fatalerror.EntityCreation, "create_datareader failed: %w", err)
	}
	log.Debug("Created DataReader")
	return dispatch.NewSubscriber(reader, topic.Name, colorFilter(opts, parser), counters, stdout), nil
}

// serve runs the control loop, and the status API when an address is given.
// A failing status API stops the loop.
func serve(loop *dispatch.Loop, statusAddress string, info statusapi.Info, counters *metering.Counters, stop *signals.Source) error {
	if statusAddress == "" {
		return loop.Run()
	}

	server := statusapi.NewServer(statusAddress, info, counters)
	if err := server.Listen(); err != nil {
		return fatalerror.New(fatalerror.InvalidArgument, err)
	}
	log.WithField("address", server.Addr()).Info("Status API started")

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.Run()
	})
	g.Go(func() error {
		err := server.Serve(ctx)
		if err != nil {
			log.WithError(err).Error("Status API failed")
			stop.Deliver(os.Interrupt)
		}
		return err
	})
	return g.Wait()
}
