// Command test drives a shell through fdexpect, handy for checking pty behaviour on a new platform by hand
package main

import (
	"log"
	"os/exec"
	"time"

	"github.com/ActiveState/fdexpect"
	flag "github.com/spf13/pflag"
)

var (
	shell   = flag.String("shell", "sh", "shell to spawn")
	timeout = flag.Duration("timeout", 5*time.Second, "how long to wait for each expectation")
	verbose = flag.Bool("verbose", false, "log every expect and send")
)

func test() error {
	opts := []fdexpect.SetOpt{fdexpect.OptDefaultTimeout(*timeout)}
	if *verbose {
		opts = append(opts, fdexpect.OptVerboseLogger())
	}

	p, err := fdexpect.Spawn(exec.Command(*shell), opts...)
	if err != nil {
		return err
	}
	// Make sure to close the pty at the end.
	defer func() { _ = p.Close() }() // Best effort.

	if err := p.SendLine("echo hello$((40+2))"); err != nil {
		return err
	}
	if _, err := p.Expect("hello42"); err != nil {
		return err
	}
	if err := p.SendLine("exit"); err != nil {
		return err
	}
	return p.ExpectExitCode(0)
}

func main() {
	flag.Parse()
	if err := test(); err != nil {
		log.Fatal(err)
	}
}
