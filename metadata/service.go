package metadata

import (
	"fmt"
	"time"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/node"
	"github.com/mohitkumar/flowpilot/persistence"
	c "github.com/patrickmn/go-cache"
)

// Service fronts workflow definition storage with save time validation and a
// short lived read cache. Runs never read definitions through here once
// started; they carry their own snapshot.
type Service interface {
	Save(wf model.Workflow) error
	Get(id string) (*model.Workflow, error)
	List() ([]model.Workflow, error)
	Delete(id string) error
	Validate(wf model.Workflow) error
}

type serviceImpl struct {
	storage  persistence.WorkflowDao
	registry *node.Registry
	cache    *c.Cache
}

func NewService(storage persistence.WorkflowDao, registry *node.Registry) Service {
	return &serviceImpl{
		storage:  storage,
		registry: registry,
		cache:    c.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *serviceImpl) Save(wf model.Workflow) error {
	if err := s.Validate(wf); err != nil {
		return err
	}
	if err := s.storage.Save(wf); err != nil {
		return err
	}
	s.cache.Delete(wf.Id)
	return nil
}

func (s *serviceImpl) Get(id string) (*model.Workflow, error) {
	if cached, found := s.cache.Get(id); found {
		wf := cached.(model.Workflow)
		return &wf, nil
	}
	wf, err := s.storage.Get(id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, *wf, c.DefaultExpiration)
	return wf, nil
}

// List always reads through to storage; the enumeration is a low frequency
// catalog call and caching it would only risk serving deleted definitions.
func (s *serviceImpl) List() ([]model.Workflow, error) {
	return s.storage.List()
}

func (s *serviceImpl) Delete(id string) error {
	if err := s.storage.Delete(id); err != nil {
		return err
	}
	s.cache.Delete(id)
	return nil
}

// Validate rejects definitions the engine would refuse to run: duplicate
// node ids, unregistered node types and connections targeting missing nodes.
// Cycles are not detected here; definitions are assumed acyclic.
func (s *serviceImpl) Validate(wf model.Workflow) error {
	seen := make(map[string]bool, len(wf.Nodes))
	for _, n := range wf.Nodes {
		if seen[n.Id] {
			return fmt.Errorf("duplicate node id %s", n.Id)
		}
		seen[n.Id] = true
		if _, ok := s.registry.Factory(n.Type); !ok {
			return fmt.Errorf("node %s references unregistered type %s", n.Id, n.Type)
		}
	}
	for sourceId, ports := range wf.Connections {
		if !seen[sourceId] {
			return fmt.Errorf("connections declared for unknown node %s", sourceId)
		}
		for _, connections := range ports {
			for _, conn := range connections {
				if !seen[conn.Node] {
					return fmt.Errorf("connection from %s targets unknown node %s", sourceId, conn.Node)
				}
			}
		}
	}
	return nil
}
