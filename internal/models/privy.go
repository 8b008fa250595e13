/**
 * Copyright 2025-present Pocket Wallet, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

// PrivyUser is the provider's view of a user: subject id plus profile
// fields and the authoritative list of linked accounts.
type PrivyUser struct {
	Subject        string
	Email          string
	Name           string
	Phone          string
	LinkedAccounts []LinkedAccount
}

// LinkedAccount is one wallet account reported by the identity provider.
// WalletClientType distinguishes provider-custodied ("privy") wallets from
// externally connected ones (e.g. "metamask").
type LinkedAccount struct {
	Type             string
	Address          string
	ChainId          int64
	WalletClientType string
	ConnectorType    string
}

// Custodied reports whether the account's keys are held by the provider.
func (a LinkedAccount) Custodied() bool {
	return a.WalletClientType == "privy"
}

// CreatedWallet is the provider's response to a wallet-creation request.
type CreatedWallet struct {
	Id      string
	Address string
	ChainId int64
}
