package controllers

import (
	"civicreport-be/reporting"
	"civicreport-be/store"
	"civicreport-be/triage"

	"github.com/rs/zerolog"
)

var (
	reportSvc *reporting.Service
	triageSvc *triage.Actions
	stores    *store.Stores
	logger    zerolog.Logger
)

// Init hands the controllers their collaborators. Called once from main
// before the routes are registered.
func Init(report *reporting.Service, actions *triage.Actions, st *store.Stores, log zerolog.Logger) {
	reportSvc = report
	triageSvc = actions
	stores = st
	logger = log
}
