package main

import "github.com/irplatform/ir-backend/cmd"

func main() {
	cmd.Init()
}
