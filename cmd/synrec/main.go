package main

import app "synrec/internal/app"

func main() {
	app.Run()
}
