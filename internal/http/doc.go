// Package http provides HTTP handlers and middleware for the
// reservation API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","user"} with the token also set as a
//     `session_token` cookie. DELETE /sessions/current revokes the token
//     presented via the Authorization header or cookie.
//   - GET /reservations, POST /reservations, GET /reservations/{id}:
//     reservation submission and listing. POST /reservations/{id}/approval
//     and POST /reservations/{id}/rejection adjudicate pending requests;
//     approval reports any displaced competitors in the response.
//   - GET /availability?date=YYYY-MM-DD: the per-room partition board for
//     one day.
//   - GET /rooms, POST /rooms, GET/PUT/DELETE /rooms/{id}: room catalog
//     endpoints. Listing is available to any authenticated principal while
//     mutations require admin privileges.
//   - GET /catering-items, POST /catering-items, DELETE /catering-items/{id}:
//     the food and snack catalog.
//   - GET /config, PUT /config: the auto-approve gate, admin only.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/me/password:
//     account management.
//
// All routes except POST /sessions sit behind the session guard. Request
// and response DTOs live alongside their respective handlers.
package http
