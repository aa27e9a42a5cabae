/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

//go:build gcodekit5_nokeyring

// Package config's stub keyring backend is used on build targets without an
// OS-level secret store (e.g. minimal CI containers); tokens are kept only
// in-process and never survive a restart.
package config

import (
	"errors"
	"sync"
)

var errStubNotFound = errors.New("config: no token stored")

var (
	stubMu    sync.Mutex
	stubStore = map[string]string{}
)

func init() {
	keyringGet = stubGet
	keyringSet = stubSet
	keyringDelete = stubDelete
}

func stubKey(service, key string) string { return service + "\x00" + key }

func stubGet(service, key string) (string, error) {
	stubMu.Lock()
	defer stubMu.Unlock()
	v, ok := stubStore[stubKey(service, key)]
	if !ok {
		return "", errStubNotFound
	}
	return v, nil
}

func stubSet(service, key, value string) error {
	stubMu.Lock()
	defer stubMu.Unlock()
	stubStore[stubKey(service, key)] = value
	return nil
}

func stubDelete(service, key string) error {
	stubMu.Lock()
	defer stubMu.Unlock()
	delete(stubStore, stubKey(service, key))
	return nil
}
