package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/logger"
)

// Rev holds binary revision string
// Set manually at build time using:
//    go build -ldflags "-X main.Rev=`git rev-parse --short HEAD`"
var Rev string

const configFileName = "tcf"

func main() {
	configFile := flag.String("config", configFileName, "name of the config file to read, without extension")
	format := flag.String("format", "", "output format, json or yaml")
	eager := flag.Bool("eager", false, "decode every field while parsing")
	gvlPath := flag.String("gvl", "", "path of a Global Vendor List used to name consented vendors")
	flag.Parse() // required for glog flags and testing package flags

	v := viper.New()
	config.SetupViper(v, *configFile)
	if *format != "" {
		v.Set("output.format", *format)
	}
	if *eager {
		v.Set("decoder.eager", true)
	}
	if *gvlPath != "" {
		v.Set("vendor_list.gvl_path", *gvlPath)
	}
	cfg, err := config.New(v)
	if err != nil {
		logger.Fatalf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		if inputs, err = readInputs(os.Stdin); err != nil {
			logger.Fatalf("Failed to read consent strings from stdin: %v", err)
		}
	}

	d, err := newDecoder(cfg, clock.New())
	if err != nil {
		logger.Fatalf("tcf-decode %s failed to start: %v", Rev, err)
	}
	if err := d.run(context.Background(), inputs, os.Stdout); err != nil {
		var aggregate errortypes.AggregateErrors
		if errors.As(err, &aggregate) {
			logger.Errorf("%v error codes: %v", err, aggregate.Codes())
		} else {
			logger.Errorf("%v", err)
		}
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

// readInputs returns the non-blank lines of r.
func readInputs(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return inputs, nil
}
