// Package capture supplies frames to the detection chain.
//
// ScreenSource grabs the live screen in-process and, when that fails, falls
// back to external screenshot commands that write a transient PNG which is
// decoded and deleted. FileSource reads frames from an image on disk for
// offline detection and tests.
package capture
