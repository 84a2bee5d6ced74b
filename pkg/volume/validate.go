/*
Copyright © 2025-2026 SUSE LLC
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package volume

import "strings"

// BTRFSVolNameMax bounds the length, in bytes, of a subvolume or snapshot
// basename: a name must be shorter than this.
const BTRFSVolNameMax = 255

func validateName(name string) error {
	if name == "" {
		return errInvalidName
	}
	if name == "." || name == ".." {
		return errInvalidName
	}
	if strings.Contains(name, "/") {
		return errInvalidName
	}
	if len(name) >= BTRFSVolNameMax {
		return errNameTooLong
	}
	return nil
}
