// Copyright 2021 The Oto Authors
// Copyright 2025 Lundis
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

//go:build !linux

package audio

import "errors"

func openALSA(SinkOptions) (Sink, error) {
	return nil, ErrDeviceNotFound
}

// MixerControl is unavailable off Linux; OpenMixerControl always fails
// with ErrDeviceNotFound.
type MixerControl struct{}

func OpenMixerControl(card, element string) (*MixerControl, error) {
	return nil, ErrDeviceNotFound
}

func (*MixerControl) SetVolume(int) error { return errors.ErrUnsupported }

func (*MixerControl) Close() error { return nil }
