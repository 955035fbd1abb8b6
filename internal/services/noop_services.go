package services

import "tubeconv/internal/models"

// NoopUI discards every lifecycle event.
type NoopUI struct{}

func (NoopUI) SetSubmitEnabled(bool) {}
func (NoopUI) Submitted(*models.Job) {}
func (NoopUI) Progress(*models.Job) {}
func (NoopUI) Completed(*models.Job) {}
func (NoopUI) Failed(string) {}

type NoopNotifier struct{}

func (NoopNotifier) Notify(string, Severity) {}

func NewNoopUI() UI {
	return NoopUI{}
}

func NewNoopNotifier() Notifier {
	return NoopNotifier{}
}
