// Package capture manages the lifecycle of a live camera feed.
//
// A Controller moves through Idle, Live and Reviewing:
//
//	Idle --Activate--> Live --Capture--> Reviewing --Accept--> Idle
//	Reviewing --Retake--> Live
//	Live|Reviewing --Cancel--> Idle
//	Live --SwitchFacing--> Live
//
// The controller is the only owner of the device handle. Accept is the only
// way a captured still leaves it, encoded as JPEG.
package capture
