package services

// Services defined in this package:
// - AuthService: registration, email verification, login, refresh tokens and sessions
// - MaterialService: study material CRUD with blob replacement
// - ReferenceService: reference book CRUD with blob replacement
// - ViewService: semester and subject pages, quiz placeholders
// - AdminService: content overview, blob operation journal, on-demand reconcile
// - Reconciler: repairs replace and delete sequences that stopped part way
