package main

import "github.com/ryanslynch/psrsb/cmd"

func main() {
	cmd.Execute()
}
