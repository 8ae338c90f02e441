// Package openapi embeds the API description served at /openapi.yaml.
package openapi

// YAML is the OpenAPI document for the storefront surface.
var YAML = []byte(`openapi: 3.0.3
info:
  title: Flash Sale Storefront
  version: "1.0"
paths:
  /products:
    get:
      summary: List products with live sale state
      responses:
        "200":
          description: Product listing
  /products/{id}:
    get:
      summary: Fetch one product
      parameters:
        - name: id
          in: path
          required: true
          schema: { type: string }
      responses:
        "200": { description: Product }
        "404": { description: Unknown product }
  /cart:
    get:
      summary: Current cart joined against the catalog
      responses:
        "200": { description: Cart lines and total }
  /cart/items:
    post:
      summary: Add one unit of a product to the cart
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [product_id]
              properties:
                product_id: { type: string }
      responses:
        "200": { description: Advisory outcome (added, unavailable, stock_limit) }
        "400": { description: Malformed request }
  /cart/items/{id}:
    put:
      summary: Set the quantity for a cart entry from raw input
      parameters:
        - name: id
          in: path
          required: true
          schema: { type: string }
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              properties:
                quantity:
                  type: string
                  description: Raw user input, parsed server-side
      responses:
        "200": { description: Advisory outcome (updated, clamped, invalid_quantity) }
    delete:
      summary: Remove a cart entry
      parameters:
        - name: id
          in: path
          required: true
          schema: { type: string }
      responses:
        "200": { description: Removal outcome }
  /checkout:
    post:
      summary: Run a checkout attempt through auth, validation, payment
      responses:
        "200": { description: Settled }
        "400": { description: Cart is empty }
        "401": { description: Authentication unavailable or declined }
        "402": { description: Payment declined }
        "409": { description: Cart entries failed validation }
  /healthz:
    get:
      summary: Liveness probe
      responses:
        "200": { description: OK }
  /debug/metrics:
    get:
      summary: Storefront counters
      responses:
        "200": { description: Metrics snapshot }
`)
