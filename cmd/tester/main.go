// Copyright 2020 ActiveState Software. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file

// Command tester is a scripted peer used to exercise fdexpect against a real process on a pty.
// It prints a login prompt, echoes back every line it reads until it sees "exit", and can be told to misbehave.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
)

var (
	prompt     = flag.String("prompt", "login: ", "prompt printed before reading each line")
	delay      = flag.Duration("delay", 0, "wait this long before printing the first prompt")
	exit1      = flag.Bool("exit1", false, "exit with exit code 1 instead of 0")
	sleep      = flag.Bool("sleep", false, "sleep for an hour, basically never return unless interrupted")
	fillBuffer = flag.Bool("fill-buffer", false, "print a string with 10,000 characters before prompting")
	stutter    = flag.Bool("stutter", false, "print 20 messages with 50 ms delays before prompting")
)

func main() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	flag.Parse()

	if *sleep {
		select {
		case <-time.After(1 * time.Hour):
			fmt.Println("returning after an hour, this will never happen")
		case sig := <-c:
			fmt.Printf("received %v\n", sig)
			os.Exit(123)
		}
	}

	if *fillBuffer {
		fmt.Println(strings.Repeat("a", 1e4))
	}

	if *stutter {
		for i := 0; i < 20; i++ {
			fmt.Printf("stuttered %d times\n", i+1)
			time.Sleep(50 * time.Millisecond)
		}
	}

	time.Sleep(*delay)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(*prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			break
		}
		fmt.Printf("hello %s\n", line)
	}

	if *exit1 {
		os.Exit(1)
	}
}
