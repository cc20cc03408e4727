package main

import "github.com/crystaldolphin/toolcalc/cmd"

func main() {
	cmd.Execute()
}
