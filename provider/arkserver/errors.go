package arkserver

import "errors"

var (
	ErrMissingServerInfo = errors.New("arkserver: ServerInfo is required")
	ErrUnknownRound      = errors.New("arkserver: unknown round id")
	ErrNoActiveRound     = errors.New("arkserver: no round is awaiting forfeit signatures")
)
