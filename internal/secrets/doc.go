// Copyright 2025 Tom Barlow
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

/*
Package secrets stores and resolves API tokens for glidectl.

Two backends are chained by priority:

  - env (100, read-only): GLIDECTL_SECRET_<KEY> or the service alias
    (GLIDE_API_TOKEN, SHIPPO_API_TOKEN)
  - keychain (50): the system keychain under the "glidectl" service

Settings refer to tokens with references resolved by Resolver.ResolveRef:

	glide:
	  token_ref: keychain:glide/api_token
	shippo:
	  token_ref: env:SHIPPO_API_TOKEN

Secret values are never logged.
*/
package secrets
