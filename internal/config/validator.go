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

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks cfg against its struct tags and returns a single error
// describing every violation.
func Validate(cfg *Config) error {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, vErr := range validationErrors {
			switch vErr.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("field %q is required", vErr.Namespace()))
			case "gte":
				messages = append(messages, fmt.Sprintf("field %q must be >= %s, got %v", vErr.Namespace(), vErr.Param(), vErr.Value()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("field %q must be one of [%s], but got %q", vErr.Namespace(), vErr.Param(), vErr.Value()))
			default:
				messages = append(messages, fmt.Sprintf("field %q failed validation on tag %q", vErr.Namespace(), vErr.Tag()))
			}
		}
		return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
	}

	return err
}
