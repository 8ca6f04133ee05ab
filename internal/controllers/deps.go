package controllers

import (
	"route_dispatch/internal/attendance"
	"route_dispatch/internal/stopstatus"
	"route_dispatch/internal/storage"
	"route_dispatch/internal/tokenstore"
)

// Shared collaborators, wired once from main before the router starts.
var (
	Tokens         tokenstore.Store
	Attendance     *attendance.Client
	Images         *storage.ImageStore
	TransitionMode stopstatus.Mode
)

// Init wires the controller package's collaborators.
func Init(tokens tokenstore.Store, att *attendance.Client, images *storage.ImageStore, mode stopstatus.Mode) {
	Tokens = tokens
	Attendance = att
	Images = images
	TransitionMode = mode
}
