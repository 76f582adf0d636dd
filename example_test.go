package liveview_test

import (
	"fmt"
	"image"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine/enginetest"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/eventloop"
)

type exampleWidget struct{ box image.Rectangle }

func (w exampleWidget) ContentArea() image.Rectangle     { return w.box }
func (exampleWidget) Format() liveview.PixelFormat       { return liveview.FormatRGB565 }
func (exampleWidget) Damage()                            {}
func (exampleWidget) Resize(image.Point)                 {}
func (exampleWidget) Screen() liveview.Overlay           { return nil }
func (exampleWidget) InvokeHandlers(id liveview.EventID) { fmt.Println("event:", id) }
func (exampleWidget) PlaneWindow() bool                  { return false }

func ExampleController() {
	rt := &enginetest.Runtime{}
	loop := eventloop.New()
	w := exampleWidget{box: image.Rect(0, 0, 320, 240)}

	ctl, err := liveview.New(w, loop, rt, liveview.Config{
		Device: "/dev/video0",
		Rect:   w.box,
		Mode:   liveview.BufferedSample,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer ctl.Close()

	if err := ctl.Start(); err != nil {
		fmt.Println("start failed:", ctl.ErrorMessage())
		return
	}
	fmt.Println(rt.Last().Spec())
	fmt.Println("state:", ctl.State())

	// Output:
	// event: property-changed
	// v4l2src device=/dev/video0 ! videoconvert ! videoscale ! video/x-raw,width=320,height=240,format=RGB16,framerate=15/1 ! appsink name=appsink async=false enable-last-sample=false sync=true
	// state: playing
	// event: property-changed
}
