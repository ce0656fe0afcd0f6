// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import "sync"

// Pool runs independent layer solves across a fixed number of workers. The handle is
// process-scoped: install it once before the simulation loop starts and remove it after.
type Pool struct {
	nworkers int
}

// workerPool is the process-wide pool handle; nil means sequential solving
var workerPool *Pool

// InstallPool installs the process-wide worker pool. nworkers < 2 removes it.
func InstallPool(nworkers int) {
	if nworkers < 2 {
		workerPool = nil
		return
	}
	workerPool = &Pool{nworkers: nworkers}
}

// RemovePool removes the process-wide worker pool
func RemovePool() {
	workerPool = nil
}

// Run executes all tasks and returns the first error, if any. Tasks share no mutable
// state: each layer owns its node and element copies.
func (o *Pool) Run(tasks []func() error) (err error) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.nworkers)
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, task func() error) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = task()
		}(i, task)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return
}
