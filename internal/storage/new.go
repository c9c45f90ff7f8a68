package storage

import "github.com/nguyentantai21042004/meetsort/internal/meeting"

type implConnector struct {
	Store
	routes meeting.Routes
}

// NewConnector binds store to routes.
func NewConnector(store Store, routes meeting.Routes) Connector {
	return &implConnector{
		Store:  store,
		routes: routes,
	}
}
