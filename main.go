package main

import "github.com/swiftline-carrier/driver-notify/cmd"

func main() {
	cmd.Execute()
}
