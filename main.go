package main

import "github.com/therealaleph/dnsstcloudflare/cmd"

func main() {
	cmd.Execute()
}
