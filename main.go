package main

import "github.com/opencivicdata/ocd-sync/cmd"

func main() {
	cmd.Execute()
}
