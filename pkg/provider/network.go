// Copyright 2024 The rpod Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import "errors"

// ErrNoPublicSSHPort is returned by ExtractNetworkInfo when record has
// no runtime port entry exposing a public SSH endpoint. pkg/podmgr,
// which has the alias context, reports a missing endpoint as its own
// *apperr.NetworkInfoMissingError rather than wrapping this value.
var ErrNoPublicSSHPort = errors.New("no public ssh port in runtime ports")

// ExtractNetworkInfo returns the (ip, port) of the first runtime port
// entry with privatePort==22 and isIpPublic==true, the provider's way
// of exposing a public SSH endpoint.
func ExtractNetworkInfo(record *PodRecord) (string, int, error) {
	if record == nil || record.Runtime == nil {
		return "", 0, ErrNoPublicSSHPort
	}
	for _, p := range record.Runtime.Ports {
		if p.PrivatePort == 22 && p.IsIPPublic {
			return p.IP, p.PublicPort, nil
		}
	}
	return "", 0, ErrNoPublicSSHPort
}
