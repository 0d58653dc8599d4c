package main

import "github.com/harentsoaR/diagnosia-api/cmd/api/cmd"

func main() {
	cmd.Execute()
}
