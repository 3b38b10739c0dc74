// Package store provides application-wide state shared across components:
// atoms keyed by type identity or an explicit name, derived selectors, and
// reducer stores. Writes notify subscribers synchronously, in registration
// order, on every Set; there is no equality short-circuit.
package store

import (
	"fmt"
	"reflect"
	"sync"
)

// Store holds atom values and their subscribers. A Store is typically owned
// by one runtime; all methods are safe for concurrent use, but subscriber
// callbacks run on the writer's goroutine.
type Store struct {
	mu      sync.Mutex
	values  map[entryKey]any
	subs    map[entryKey][]subscriber
	nextSub uint64
}

type entryKey struct {
	typ  reflect.Type
	name string
}

func (k entryKey) String() string {
	if k.name == "" {
		return k.typ.String()
	}
	return fmt.Sprintf("%s(%s)", k.typ, k.name)
}

type subscriber struct {
	id uint64
	fn func()
}

// New returns an empty store.
func New() *Store {
	return &Store{
		values: make(map[entryKey]any),
		subs:   make(map[entryKey][]subscriber),
	}
}

// init stores initial only when the entry is absent.
func (s *Store) init(k entryKey, initial any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[k]; !ok {
		s.values[k] = initial
	}
}

func (s *Store) get(k entryKey) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[k]
	return v, ok
}

// set stores the value and notifies every subscriber in registration order.
// The subscriber list is snapshotted under the lock and invoked outside it,
// so a subscriber added during notification is not called for the write in
// flight. Writes from inside a callback run to completion; reentrancy is
// the caller's responsibility.
func (s *Store) set(k entryKey, v any) {
	s.mu.Lock()
	s.values[k] = v
	snapshot := append([]subscriber(nil), s.subs[k]...)
	s.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn()
	}
}

// subscribe registers fn for writes to k and returns an idempotent
// unsubscribe function.
func (s *Store) subscribe(k entryKey, fn func()) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[k] = append(s.subs[k], subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.subs[k]
		for i, sub := range list {
			if sub.id == id {
				s.subs[k] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

func keyOf[T any](name string) entryKey {
	return entryKey{typ: reflect.TypeOf((*T)(nil)).Elem(), name: name}
}

// Atom is a typed handle to one store entry. The zero Atom is not usable;
// create handles with NewAtom, NewKeyedAtom, or LookupAtom.
type Atom[T any] struct {
	store *Store
	key   entryKey
}

// NewAtom binds the atom keyed by T's type identity, storing initial when
// the entry is new. Rebinding an existing entry keeps its current value.
func NewAtom[T any](s *Store, initial T) Atom[T] {
	a := Atom[T]{store: s, key: keyOf[T]("")}
	s.init(a.key, initial)
	return a
}

// NewKeyedAtom binds an atom under an explicit name, letting several atoms
// of the same type coexist in one store.
func NewKeyedAtom[T any](s *Store, name string, initial T) Atom[T] {
	a := Atom[T]{store: s, key: keyOf[T](name)}
	s.init(a.key, initial)
	return a
}

// LookupAtom binds a handle without initializing the entry; Get reports
// ok=false until someone writes it.
func LookupAtom[T any](s *Store, name string) Atom[T] {
	return Atom[T]{store: s, key: keyOf[T](name)}
}

// Get returns the current value and whether the entry has ever been set.
func (a Atom[T]) Get() (T, bool) {
	v, ok := a.store.get(a.key)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustGet returns the current value and panics when the entry is unset.
func (a Atom[T]) MustGet() T {
	v, ok := a.Get()
	if !ok {
		panic(fmt.Sprintf("store: atom %s not set", a.key))
	}
	return v
}

// Set stores v and notifies subscribers, equal value or not.
func (a Atom[T]) Set(v T) {
	a.store.set(a.key, v)
}

// Update applies fn to the current value (zero value when unset) and stores
// the result.
func (a Atom[T]) Update(fn func(T) T) {
	v, _ := a.Get()
	a.Set(fn(v))
}

// Subscribe registers fn for every write to this atom and returns an
// idempotent unsubscribe function.
func (a Atom[T]) Subscribe(fn func()) func() {
	return a.store.subscribe(a.key, fn)
}

// Selector derives a value from an atom, recomputing on every Get; results
// are never cached.
type Selector[T, U any] struct {
	atom    Atom[T]
	project func(T) U
}

// NewSelector builds a selector over atom.
func NewSelector[T, U any](atom Atom[T], project func(T) U) Selector[T, U] {
	return Selector[T, U]{atom: atom, project: project}
}

// Get projects the atom's current value (zero value when unset).
func (s Selector[T, U]) Get() U {
	v, _ := s.atom.Get()
	return s.project(v)
}

// Subscribe follows the underlying atom.
func (s Selector[T, U]) Subscribe(fn func()) func() {
	return s.atom.Subscribe(fn)
}

// Reducer holds state evolved exclusively through dispatched actions.
type Reducer[S, A any] struct {
	atom    Atom[S]
	reducer func(S, A) S
}

// NewReducer creates a reducer store under an explicit name with the given
// initial state.
func NewReducer[S, A any](s *Store, name string, reducer func(S, A) S, initial S) *Reducer[S, A] {
	return &Reducer[S, A]{
		atom:    NewKeyedAtom(s, name, initial),
		reducer: reducer,
	}
}

// State returns the current state.
func (r *Reducer[S, A]) State() S {
	return r.atom.MustGet()
}

// Dispatch applies the pure reducer to the current state and stores the
// result, notifying subscribers.
func (r *Reducer[S, A]) Dispatch(action A) {
	r.atom.Set(r.reducer(r.atom.MustGet(), action))
}

// Subscribe registers fn for every dispatch.
func (r *Reducer[S, A]) Subscribe(fn func()) func() {
	return r.atom.Subscribe(fn)
}
