package reconcile

// ViewBinding says which optional regions of the dashboard exist. It is
// captured once at startup. Events aimed at an absent region are no-ops.
type ViewBinding struct {
	Status   bool
	Alerts   bool
	Camera   bool
	WakeWord bool
}

// FullBinding binds every region.
func FullBinding() ViewBinding {
	return ViewBinding{Status: true, Alerts: true, Camera: true, WakeWord: true}
}
