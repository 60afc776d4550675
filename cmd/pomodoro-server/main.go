// Command pomodoro-server runs the single-slot alarm daemon.
package main

import "github.com/oshokin/pomodoro-alarm/cmd/pomodoro-server/cmd"

func main() {
	cmd.Execute()
}
