// Command live-view shows a V4L2 camera in an off-screen widget or on a
// framebuffer overlay plane.
package main

func main() {
	Execute()
}
