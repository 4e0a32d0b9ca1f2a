package main

import (
	"github.com/oneconcern/crane/cmd/crane/cmd"
)

func main() {
	cmd.Execute()
}
