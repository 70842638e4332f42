package main

import "github.com/mj1618/websteps/cmd"

func main() {
	cmd.Execute()
}
