// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/dds"
	"go.shapes.dev/interop/fatalerror"
	"go.shapes.dev/interop/logging"
)

const (
	transportLoopback = "loopback"
	transportMQTT     = "mqtt"
)

type options struct {
	Publisher  bool   `short:"P" description:"Act as publisher"`
	Subscriber bool   `short:"S" description:"Act as subscriber"`
	DomainID   string `short:"d" value-name:"id" default:"0" description:"Sets the domain id number"`
	Topic      string `short:"t" value-name:"name" required:"true" description:"Sets the topic name"`
	Color      string `short:"c" value-name:"color" default:"BLUE" description:"Color to publish (or filter)"`
	Durability string `short:"D" value-name:"durability" choice:"v" choice:"l" choice:"t" choice:"p" default:"v" description:"Set durability"`
	BestEffort bool   `short:"b" description:"BEST_EFFORT reliability"`
	Reliable   bool   `short:"r" description:"RELIABLE reliability"`
	History    string `short:"k" value-name:"depth" description:"Keep history depth"`
	Deadline   string `short:"f" value-name:"interval" description:"Set a 'deadline' with interval (seconds)"`
	Partition  string `short:"p" value-name:"partition" description:"Set a 'partition' string"`
	Interval   string `short:"i" value-name:"interval" description:"Apply 'time based filter' with interval (seconds)"`
	Strength   string `short:"s" value-name:"strength" description:"Set ownership strength [-1: SHARED]"`

	Transport     string `long:"transport" choice:"loopback" choice:"mqtt" default:"mqtt" description:"Middleware transport"`
	Broker        string `long:"broker" default:"tcp://localhost:1883" description:"MQTT broker URL"`
	LogLevel      string `long:"log-level" default:"info" description:"log level"`
	LogConfig     string `long:"log-config" default:"logging-config.yaml" description:"YAML logging configuration file"`
	StatusAddress string `long:"status-address" description:"Serve the status API on this address"`
}

var errHelp = errors.New("help requested")

func newParser(opts *options) *flags.Parser {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "shapes-interop"
	parser.ShortDescription = "Command-line \"shapes\" interoperability test."
	return parser
}

// parseArgs parses args, without the program name.
func parseArgs(args []string) (options, *flags.Parser, error) {
	var opts options
	parser := newParser(&opts)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return opts, parser, errHelp
		}
		return opts, parser, fatalerror.New(fatalerror.InvalidArgument, err)
	}
	if opts.Publisher == opts.Subscriber {
		return opts, parser, fatalerror.Errorf(fatalerror.InvalidArgument, "exactly one of -P and -S is required")
	}
	if opts.BestEffort && opts.Reliable {
		return opts, parser, fatalerror.Errorf(fatalerror.InvalidArgument, "-b and -r are mutually exclusive")
	}
	return opts, parser, nil
}

func isSet(parser *flags.Parser, short rune) bool {
	opt := parser.FindOptionByShortName(short)
	return opt != nil && opt.IsSet()
}

// domainID falls back to domain 0 when the value is not a valid id.
func (opts options) domainID() uint16 {
	id, err := strconv.ParseUint(opts.DomainID, 10, 16)
	if err != nil {
		log.WithField("domain", opts.DomainID).Warn("Invalid domain id, using 0")
		return 0
	}
	return uint16(id)
}

// colorFilter is the color a subscriber restricts its output to, or empty.
func colorFilter(opts options, parser *flags.Parser) string {
	if opts.Subscriber && isSet(parser, 'c') {
		return opts.Color
	}
	return ""
}

func buildQos(opts options, parser *flags.Parser) (dds.QosPolicies, error) {
	switch {
	case isSet(parser, 'p'):
		return dds.QosPolicies{}, fatalerror.Errorf(fatalerror.UnsupportedQos, "QoS policy Partition is not yet implemented.")
	case isSet(parser, 'i'):
		return dds.QosPolicies{}, fatalerror.Errorf(fatalerror.UnsupportedQos, "QoS policy Time Based Filter is not yet implemented.")
	case isSet(parser, 's'):
		return dds.QosPolicies{}, fatalerror.Errorf(fatalerror.UnsupportedQos, "QoS policy Ownership Strength is not yet implemented.")
	}

	qos := dds.QosPolicies{
		Reliability: dds.Reliability{Kind: dds.BestEffort},
		History:     dds.History{Kind: dds.KeepAll},
	}
	if opts.Reliable {
		qos.Reliability = dds.Reliability{Kind: dds.Reliable}
	}

	switch opts.Durability {
	case "l":
		qos.Durability = dds.TransientLocal
	case "t":
		qos.Durability = dds.Transient
	case "p":
		qos.Durability = dds.Persistent
	default:
		qos.Durability = dds.Volatile
	}

	if isSet(parser, 'k') {
		depth, err := strconv.ParseInt(opts.History, 10, 32)
		if err == nil && depth >= 0 {
			qos.History = dds.History{Kind: dds.KeepLast, Depth: int32(depth)}
		}
	}

	if isSet(parser, 'f') {
		seconds, err := strconv.ParseFloat(opts.Deadline, 64)
		if err != nil {
			return dds.QosPolicies{}, fatalerror.Errorf(fatalerror.InvalidArgument, "Expected numeric value for deadline. %w", err)
		}
		if math.IsNaN(seconds) || seconds >= maxDeadlineSeconds {
			return dds.QosPolicies{}, fatalerror.Errorf(fatalerror.InvalidArgument, "Expected numeric value for deadline. %q is out of range", opts.Deadline)
		}
		if seconds > 0 {
			qos.Deadline = time.Duration(seconds * float64(time.Second))
		}
	}
	return qos, nil
}

// longest deadline a time.Duration can hold
const maxDeadlineSeconds = float64(math.MaxInt64 / int64(time.Second))

// loggingConfig reads the logging configuration file, falling back to the
// --log-level flag when there is none.
func loggingConfig(opts options) (logging.Config, error) {
	cfg, found, err := logging.LoadConfig(opts.LogConfig, logging.DefaultConfig(opts.LogLevel))
	if err != nil {
		return cfg, fatalerror.New(fatalerror.LoggingConfig, err)
	}
	if !found {
		log.WithField("file", opts.LogConfig).Debug("No logging config file")
	}
	return cfg, nil
}
