package main

import "extranet_rates/cmd"

func main() {
	cmd.Execute()
}
