// Package command builds httpx invocation strings. Nothing here runs the
// scanner; the result is handed back to the caller as text.
package command

import (
	"strconv"
	"strings"
)

const (
	// Binary is the scanner executable named at the start of every command.
	Binary = "httpx"

	listSeparator = ","
)

// Request holds the already validated scan parameters.
type Request struct {
	Targets []string
	Ports   []int
	Probes  []string
}

// Args constructs httpx command line arguments from the request.
func Args(req Request) []string {
	// Base args: target list, quiet output
	args := []string{"-u", strings.Join(req.Targets, listSeparator), "-silent"}

	// Port specification
	if len(req.Ports) > 0 {
		ports := make([]string, 0, len(req.Ports))
		for _, port := range req.Ports {
			ports = append(ports, strconv.Itoa(port))
		}
		args = append(args, "-p", strings.Join(ports, listSeparator))
	}

	// One flag per probe, in input order
	for _, probe := range req.Probes {
		args = append(args, "-"+probe)
	}

	return args
}

// Build returns the full command line for the request.
func Build(req Request) string {
	return Binary + " " + strings.Join(Args(req), " ")
}
