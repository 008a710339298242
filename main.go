package main

import "github.com/jfmyers9/lastfm/cmd"

func main() {
	cmd.Execute()
}
