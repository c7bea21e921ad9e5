package main

import "palmsgig.com/palmsgig/cmd"

func main() {
	cmd.Execute()
}
