/*
 * Copyright 2025 Skytrace Systems.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package platform

// loginRequest is the credential payload for POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the bearer token issued by the platform. The token
// is a JWT whose exp claim drives refresh scheduling.
type loginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// RawEvent is one undecoded logger record as returned by the platform's
// event endpoint. Field presence is not guaranteed; DecodeEvent validates.
type RawEvent struct {
	DateTime    *string `json:"date_time,omitempty"`
	PageAddress *int64  `json:"page_address,omitempty"`
	TotalTime   int64   `json:"total_time"`
	Bitfield    uint32  `json:"bitfield"`
	LoggerPage  int64   `json:"logger_page,omitempty"`
	PilotName   string  `json:"pilot_name,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// eventsPage is one page of the paginated event listing, ascending by page
// address.
type eventsPage struct {
	Data    []RawEvent `json:"data"`
	HasNext bool       `json:"has_next"`
}
