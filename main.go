package main

import "github.com/altnet-labs/vpsnetd/cmd"

func main() {
	cmd.Execute()
}
