package main

import "github.com/Arnthorny/gatehouse/cmd/gatehouse/cmd"

func main() {
	cmd.Execute()
}
