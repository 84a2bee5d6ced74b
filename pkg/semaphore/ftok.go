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

package semaphore

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Ftok reproduces the classic SysV IPC key derivation: the low byte of
// proj, the low byte of the path's device number, and the low 16 bits of
// its inode number, packed into a single int32. Two processes pointing at
// the same path and project id converge on the same key without any other
// coordination.
func Ftok(path string, proj byte) (int32, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, errors.Wrapf(err, "stat %s for semaphore key derivation", path)
	}
	key := int32(proj)<<24 | int32(st.Dev&0xff)<<16 | int32(st.Ino&0xffff)
	return key, nil
}
